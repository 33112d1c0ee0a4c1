package services

import (
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
)

// maxHierarchyDepth bounds the level-by-level walk; reporting chains in
// practice are a handful of levels deep.
const maxHierarchyDepth = 32

// TeamMemberIDs returns the ids of every user reporting to managerID,
// directly or indirectly. The closure is computed one level per query
// (manager_id IN frontier) instead of one query per member. The manager
// itself is not included.
func TeamMemberIDs(db *gorm.DB, managerID uint) ([]uint, error) {
	seen := map[uint]bool{managerID: true}
	frontier := []uint{managerID}
	var members []uint

	for depth := 0; depth < maxHierarchyDepth && len(frontier) > 0; depth++ {
		var next []uint
		if err := db.Model(&models.User{}).
			Where("manager_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range next {
			if seen[id] {
				continue
			}
			seen[id] = true
			members = append(members, id)
			frontier = append(frontier, id)
		}
	}
	return members, nil
}

// InHierarchy reports whether userID reports to managerID, directly or
// indirectly.
func InHierarchy(db *gorm.DB, managerID, userID uint) (bool, error) {
	members, err := TeamMemberIDs(db, managerID)
	if err != nil {
		return false, err
	}
	for _, id := range members {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// CanReview reports whether the actor may view and mutate records belonging
// to targetID. A marraine may act on anyone; a manager only on their own
// hierarchy; everyone else on nobody.
func CanReview(db *gorm.DB, actor *models.User, targetID uint) (bool, error) {
	switch actor.Role {
	case models.RoleMarraine:
		return true, nil
	case models.RoleManager:
		return InHierarchy(db, actor.ID, targetID)
	default:
		return false, nil
	}
}

// ScopedParticipantIDs returns the participants the actor's dashboard covers:
// every user for a marraine, the reporting hierarchy for a manager.
func ScopedParticipantIDs(db *gorm.DB, actor *models.User) ([]uint, error) {
	if actor.Role == models.RoleMarraine {
		var ids []uint
		if err := db.Model(&models.User{}).
			Where("id <> ?", actor.ID).
			Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	}
	return TeamMemberIDs(db, actor.ID)
}
