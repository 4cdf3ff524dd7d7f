package server

import (
	"linkup/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetConnections handles GET /api/connections
func (s *Server) GetConnections(c *fiber.Ctx) error {
	users, err := s.connectionRepo.GetConnections(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Connections retrieved", users)
}

// Connect handles POST /api/connections/:userId
// Connecting twice, in either direction, is a no-op.
func (s *Server) Connect(c *fiber.Ctx) error {
	peerID, err := parseID(c, "userId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	userID := currentUserID(c)
	if peerID == userID {
		return models.RespondWithError(c,
			models.NewValidationError("You cannot connect with yourself"))
	}

	if _, err := s.userRepo.GetByID(c.UserContext(), peerID); err != nil {
		return models.RespondWithError(c, err)
	}

	already, err := s.connectionRepo.AreConnected(c.UserContext(), userID, peerID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if already {
		return models.Respond(c, fiber.StatusOK, "Already connected", nil)
	}

	if err := s.connectionRepo.Connect(c.UserContext(), userID, peerID); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "Connected", nil)
}

// Disconnect handles DELETE /api/connections/:userId
func (s *Server) Disconnect(c *fiber.Ctx) error {
	peerID, err := parseID(c, "userId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.connectionRepo.Disconnect(c.UserContext(), currentUserID(c), peerID); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Disconnected", nil)
}
