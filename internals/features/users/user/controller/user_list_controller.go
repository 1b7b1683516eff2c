package controller

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	paymentService "educenter_backend/internals/features/finance/payments/service"
	"educenter_backend/internals/features/users/user/dto"
	"educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

// GET /api/users/admins?firstName=&lastName=&phone=
func (uc *UserController) ListAdmins(c *fiber.Ctx) error {
	q := uc.DB.WithContext(c.UserContext()).
		Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", string(constants.RoleAdmin))
	for param, col := range map[string]string{
		"firstName": "users.first_name",
		"lastName":  "users.last_name",
		"phone":     "users.phone",
	} {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			q = q.Where("LOWER("+col+") LIKE ?", like(v))
		}
	}
	var users []model.UserModel
	if err := q.Order("users.id ASC").Find(&users).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Admins fetched", dto.FromModelList(users), nil)
}

// GET /api/users/students?id=&firstName=&lastName=
func (uc *UserController) ListStudents(c *fiber.Ctx) error {
	q := uc.DB.WithContext(c.UserContext()).
		Model(&model.UserModel{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", string(constants.RoleStudent))
	id, err := helper.ParseIDQuery(c, "id", false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if id > 0 {
		q = q.Where("users.id = ?", id)
	}
	if v := strings.TrimSpace(c.Query("firstName")); v != "" {
		q = q.Where("LOWER(users.first_name) LIKE ?", like(v))
	}
	if v := strings.TrimSpace(c.Query("lastName")); v != "" {
		q = q.Where("LOWER(users.last_name) LIKE ?", like(v))
	}

	var users []model.UserModel
	if err := q.Order("users.id ASC").Find(&users).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	out := make([]dto.StudentBrief, 0, len(users))
	for _, u := range users {
		out = append(out, dto.StudentBrief{ID: u.ID, FullName: u.FullName(), Phone: u.Phone})
	}
	return helper.JsonList(c, "Students fetched", out, nil)
}

// GET /api/users/all/students?groupId=&paid=&firstName=&lastName=&phone=&address=&monthFor=
func (uc *UserController) ListStudentsWithPayments(c *fiber.Ctx) error {
	db := uc.DB.WithContext(c.UserContext())

	monthFor := strings.TrimSpace(c.Query("monthFor"))
	if monthFor == "" {
		monthFor = dbtime.CurrentMonth()
	} else if !paymentService.ValidMonthFor(monthFor) {
		return helper.JsonError(c, fiber.StatusBadRequest, "monthFor must be YYYY-MM")
	}
	groupID, err := helper.ParseIDQuery(c, "groupId", false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paid := strings.ToLower(strings.TrimSpace(c.Query("paid")))
	if paid != "" && paid != "true" && paid != "false" {
		return helper.JsonError(c, fiber.StatusBadRequest, "paid must be true or false")
	}

	q := db.Model(&model.UserModel{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", string(constants.RoleStudent))
	for param, col := range map[string]string{
		"firstName": "users.first_name",
		"lastName":  "users.last_name",
		"phone":     "users.phone",
		"address":   "users.address",
	} {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			q = q.Where("LOWER("+col+") LIKE ?", like(v))
		}
	}
	if groupID > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM group_students gs WHERE gs.user_id = users.id AND gs.group_id = ?)", groupID)
	}
	var students []model.UserModel
	if err := q.Order("users.id ASC").Find(&students).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	ids := make([]uint, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	groupsOf, err := groupService.GroupsOfStudents(db, ids...)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var allGroupIDs []uint
	for _, gs := range groupsOf {
		for _, g := range gs {
			allGroupIDs = append(allGroupIDs, g.ID)
		}
	}
	counts, err := groupService.RosterCounts(db, allGroupIDs...)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var payments []paymentModel.PaymentModel
	if len(ids) > 0 {
		if err := db.Where("user_id IN ? AND month_for = ?", ids, monthFor).
			Order("id ASC").
			Find(&payments).Error; err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	type pairKey struct{ user, group uint }
	byPair := make(map[pairKey][]paymentModel.PaymentModel)
	for _, p := range payments {
		k := pairKey{p.UserID, p.GroupID}
		byPair[k] = append(byPair[k], p)
	}

	out := make([]dto.StudentWithPayments, 0, len(students))
	for _, s := range students {
		item := dto.StudentWithPayments{
			ID:       s.ID,
			FullName: s.FullName(),
			Phone:    s.Phone,
			Address:  s.Address,
			Groups:   []dto.StudentGroup{},
			Payments: []dto.StudentPayment{},
		}
		for _, g := range groupsOf[s.ID] {
			item.Groups = append(item.Groups, studentGroup(g, counts[g.ID]))

			rows := byPair[pairKey{s.ID, g.ID}]
			if len(rows) == 0 {
				item.Payments = append(item.Payments, dto.StudentPayment{MonthFor: monthFor, GroupID: g.ID})
				continue
			}
			for _, p := range rows {
				id, pt, at := p.ID, string(p.PaymentType), p.CreatedAt
				item.Payments = append(item.Payments, dto.StudentPayment{
					ID: &id, Amount: p.Amount, MonthFor: p.MonthFor, Paid: p.Paid,
					PaymentType: &pt, GroupID: g.ID, CreatedAt: &at,
				})
			}
		}
		if paid != "" && !hasPaid(item.Payments, paid == "true") {
			continue
		}
		out = append(out, item)
	}
	return helper.JsonList(c, "Students fetched", out, nil)
}

func hasPaid(rows []dto.StudentPayment, want bool) bool {
	for _, p := range rows {
		if p.Paid == want {
			return true
		}
	}
	return false
}

func studentGroup(g groupModel.GroupModel, count int64) dto.StudentGroup {
	sg := dto.StudentGroup{
		ID:           g.ID,
		Name:         g.Name,
		StudentCount: count,
		Status:       string(g.Status),
		Price:        g.Price,
		DaysOfWeek:   []string(g.DaysOfWeek),
	}
	if sg.DaysOfWeek == nil {
		sg.DaysOfWeek = []string{}
	}
	if g.Teacher != nil {
		name := g.Teacher.FullName()
		sg.Teacher = &name
	}
	if g.Course != nil {
		sg.Course = &g.Course.Name
	}
	if g.StartTime != "" && g.EndTime != "" {
		t := g.StartTime + " " + g.EndTime
		sg.Time = &t
	}
	return sg
}

// GET /api/users/workers
func (uc *UserController) ListWorkers(c *fiber.Ctx) error {
	db := uc.DB.WithContext(c.UserContext())
	var workers []model.UserModel
	if err := db.Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name NOT IN ?", []string{string(constants.RoleStudent), string(constants.RoleSuperAdmin)}).
		Order("users.id ASC").
		Find(&workers).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	ids := make([]uint, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.ID)
	}
	var taught []groupModel.GroupModel
	if len(ids) > 0 {
		if err := db.Preload("Course").Where("teacher_id IN ?", ids).Order("id ASC").Find(&taught).Error; err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	groupsOf := make(map[uint][]groupModel.GroupModel)
	for _, g := range taught {
		groupsOf[*g.TeacherID] = append(groupsOf[*g.TeacherID], g)
	}

	out := make([]dto.Worker, 0, len(workers))
	for _, w := range workers {
		item := dto.Worker{
			ID: w.ID, FirstName: w.FirstName, LastName: w.LastName, Username: w.Username,
			Phone: w.Phone, Address: w.Address, Specialty: w.Specialty, Salary: w.Salary,
			Role: string(w.RoleName()), Groups: []string{}, Courses: []string{},
		}
		seen := map[string]bool{}
		for _, g := range groupsOf[w.ID] {
			item.Groups = append(item.Groups, g.Name)
			if g.Course != nil && !seen[g.Course.Name] {
				seen[g.Course.Name] = true
				item.Courses = append(item.Courses, g.Course.Name)
			}
		}
		sort.Strings(item.Courses)
		out = append(out, item)
	}
	return helper.JsonOK(c, "Workers fetched", fiber.Map{
		"total":   len(out),
		"workers": out,
	})
}
