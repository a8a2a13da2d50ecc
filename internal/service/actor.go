package service

import (
	"findautopart/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller: the usuario id and rol from the JWT.
// Lifecycle rules branch on Rol explicitly.
type Actor struct {
	ID  uuid.UUID
	Rol string
}

func (a Actor) EsAdmin() bool     { return a.Rol == model.RolAdministrador }
func (a Actor) EsTaller() bool    { return a.Rol == model.RolTaller }
func (a Actor) EsProveedor() bool { return a.Rol == model.RolProveedor }
