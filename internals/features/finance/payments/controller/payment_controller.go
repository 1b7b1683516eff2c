package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/features/finance/payments/dto"
	"educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/features/finance/payments/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/money"
)

var validatePayment = money.NewValidator()

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Group").Preload("Course")
}

func (pc *PaymentController) parse(c *fiber.Ctx) (service.PaymentInput, error) {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return service.PaymentInput{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validatePayment.Struct(in); err != nil {
		return service.PaymentInput{}, err
	}
	return in.ToInput(), nil
}

func (pc *PaymentController) reply(c *fiber.Ctx, id uint, msg string, status int) error {
	var p model.PaymentModel
	if err := withRefs(pc.DB.WithContext(c.UserContext())).First(&p, id).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if status == fiber.StatusCreated {
		return helper.JsonCreated(c, msg, dto.FromModel(p))
	}
	return helper.JsonUpdated(c, msg, dto.FromModel(p))
}

// POST /api/payments
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	in, err := pc.parse(c)
	if err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return helper.ValidationError(c, err)
		}
		return helper.FromFiberError(c, err)
	}
	p, err := service.Record(c.UserContext(), pc.DB, in)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return pc.reply(c, p.ID, "Payment recorded", fiber.StatusCreated)
}

// PUT /api/payments/:id
func (pc *PaymentController) UpdatePayment(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validatePayment.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if _, err := service.Update(c.UserContext(), pc.DB, id, req.ToPatch()); err != nil {
		return helper.FromFiberError(c, err)
	}
	return pc.reply(c, id, "Payment updated", fiber.StatusOK)
}

// DELETE /api/payments/:id
func (pc *PaymentController) DeletePayment(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.Delete(c.UserContext(), pc.DB, id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Payment deleted", fiber.Map{"id": id})
}

// GET /api/payments?page=&per_page=
func (pc *PaymentController) ListPayments(c *fiber.Ctx) error {
	db := pc.DB.WithContext(c.UserContext())
	var total int64
	if err := db.Model(&model.PaymentModel{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 200)
	var rows []model.PaymentModel
	if err := withRefs(db).
		Order("created_at DESC, id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Payments fetched", dto.FromModelList(rows), helper.BuildPagination(total, p))
}

// GET /api/payments/:id
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var p model.PaymentModel
	if err := withRefs(pc.DB.WithContext(c.UserContext())).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Payment not found")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Payment fetched", dto.FromModel(p))
}
