package api

import (
	"github.com/christian-rost/stammdatenmanagement/internal/database"
	"github.com/christian-rost/stammdatenmanagement/internal/grouping"
	"github.com/christian-rost/stammdatenmanagement/internal/services"
)

// UserToResponse strips credentials from a user.
func UserToResponse(u *database.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}

// DecisionRequestToInput converts the request body into a service input.
// Empty status is passed through; the service applies the default.
func DecisionRequestToInput(req DecisionRequest) services.DecisionInput {
	return services.DecisionInput{
		Key:       grouping.Key{Name: req.Name, Locality: req.Locality},
		KeepID:    req.KeepID,
		DeleteIDs: req.DeleteIDs,
		Note:      req.Note,
		Status:    database.DecisionStatus(req.Status),
	}
}
