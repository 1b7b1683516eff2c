//go:build testutil

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/testdb"
)

func TestConcurrentPaymentsSettleOnce(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer h.Close()

	course := courseModel.CourseModel{Name: "English"}
	if err := h.DB.Create(&course).Error; err != nil {
		t.Fatal(err)
	}
	g := groupModel.GroupModel{Name: "E-1", CourseID: course.ID, Price: decimal.NewFromInt(100000), Status: groupModel.GroupActive}
	if err := h.DB.Create(&g).Error; err != nil {
		t.Fatal(err)
	}
	s := userModel.UserModel{FirstName: "Ali", LastName: "V", Phone: "+998900000001", RoleID: h.Roles[constants.RoleStudent]}
	if err := h.DB.Create(&s).Error; err != nil {
		t.Fatal(err)
	}
	if err := h.DB.Create(&groupModel.GroupStudentModel{GroupID: g.ID, UserID: s.ID}).Error; err != nil {
		t.Fatal(err)
	}

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Record(ctx, h.DB, PaymentInput{
				UserID: s.ID, GroupID: g.ID, Amount: decimal.NewFromInt(10000), MonthFor: "2025-03", PaymentType: model.PaymentCash,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	var rows []model.PaymentModel
	if err := h.DB.Order("id").Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != n {
		t.Fatalf("rows = %d, want %d", len(rows), n)
	}
	for i, r := range rows {
		if !r.Paid {
			t.Fatalf("row %d unpaid: %s", i, r.Amount)
		}
	}
}
