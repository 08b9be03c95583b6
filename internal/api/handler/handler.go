package handler

import (
	"traderlink/backend/internal/chathub"
	"traderlink/backend/internal/storage"
)

// Handler holds the dependencies of the HTTP surface: the hub for socket
// registration and storage for resolving authenticated users.
type Handler struct {
	Hub       *chathub.ManagerService
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, jwtSecret []byte) *Handler {
	return &Handler{Hub: hub, Storage: s, JWTSecret: jwtSecret}
}
