package service

import (
	"errors"
	"fmt"
)

// Kind classifies domain failures. Handlers map each kind to an HTTP status.
type Kind int

const (
	KindInterno Kind = iota
	KindNoEncontrado
	KindNoAutorizado
	KindConflicto
	KindValidacion
	KindNoAutenticado
)

// Error is a domain failure with a message safe to show to the client.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func noEncontrado(format string, a ...interface{}) error {
	return &Error{Kind: KindNoEncontrado, Msg: fmt.Sprintf(format, a...)}
}

func noAutorizado(format string, a ...interface{}) error {
	return &Error{Kind: KindNoAutorizado, Msg: fmt.Sprintf(format, a...)}
}

func noAutenticado(format string, a ...interface{}) error {
	return &Error{Kind: KindNoAutenticado, Msg: fmt.Sprintf(format, a...)}
}

func conflicto(format string, a ...interface{}) error {
	return &Error{Kind: KindConflicto, Msg: fmt.Sprintf(format, a...)}
}

func validacion(format string, a ...interface{}) error {
	return &Error{Kind: KindValidacion, Msg: fmt.Sprintf(format, a...)}
}

// KindOf returns the kind of err, KindInterno for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInterno
}

// Messages shared between the pre-check and the unique-index path, so a lost
// race surfaces exactly like the fast-path rejection.
const (
	msgOfertaDuplicada = "el proveedor ya envió una oferta para esta cotización"
	msgPedidoDuplicado = "la cotización ya tiene un pedido"
	msgNoAbierta       = "la cotización no está abierta"
)
