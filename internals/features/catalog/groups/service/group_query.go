package service

import (
	"gorm.io/gorm"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

type rosterCount struct {
	GroupID uint
	N       int64
}

// RosterCounts maps group id to the number of enrolled students.
func RosterCounts(db *gorm.DB, groupIDs ...uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}
	var rows []rosterCount
	if err := db.Model(&groupModel.GroupStudentModel{}).
		Select("group_id, COUNT(*) AS n").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.GroupID] = r.N
	}
	return out, nil
}

// Roster returns the students of a group ordered by name.
func Roster(db *gorm.DB, groupID uint) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := db.Model(&userModel.UserModel{}).
		Joins("JOIN group_students gs ON gs.user_id = users.id").
		Where("gs.group_id = ?", groupID).
		Order("users.first_name ASC, users.last_name ASC, users.id ASC").
		Find(&users).Error
	return users, err
}

// GroupsOfStudents maps user id to the groups they are enrolled in, with
// course and teacher loaded.
func GroupsOfStudents(db *gorm.DB, userIDs ...uint) (map[uint][]groupModel.GroupModel, error) {
	out := make(map[uint][]groupModel.GroupModel, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var links []groupModel.GroupStudentModel
	if err := db.Where("user_id IN ?", userIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.GroupID)
	}
	var groups []groupModel.GroupModel
	if len(ids) > 0 {
		if err := db.Preload("Course").Preload("Teacher").Where("id IN ?", ids).Order("id ASC").Find(&groups).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]groupModel.GroupModel, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	for _, l := range links {
		if g, ok := byID[l.GroupID]; ok {
			out[l.UserID] = append(out[l.UserID], g)
		}
	}
	return out, nil
}

// CountDistinctStudents counts students enrolled in any active group.
func CountDistinctStudents(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Table("group_students gs").
		Joins("JOIN groups g ON g.id = gs.group_id").
		Where("g.status = ?", groupModel.GroupActive).
		Distinct("gs.user_id").
		Count(&n).Error
	return n, err
}
