package service

import (
	"context"
	"errors"
	"testing"

	"findautopart/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firmadorCaido struct{}

func (firmadorCaido) SignForRead(context.Context, string) (string, error) {
	return "", errors.New("sin credenciales")
}

type firmadorOK struct{}

func (firmadorOK) SignForRead(_ context.Context, key string) (string, error) {
	return "https://blobs.test/" + key, nil
}

func cotizacionConImagen() *model.Cotizacion {
	key := "imagenes/2026/03/disco.jpg"
	return &model.Cotizacion{
		ID:     uuid.New(),
		Estado: model.CotizacionAbierta,
		Items: []model.CotizacionItem{
			{ID: uuid.New(), Posicion: 1, Nombre: "Disco", Cantidad: 2, ImagenKey: &key},
			{ID: uuid.New(), Posicion: 2, Nombre: "Pastillas", Cantidad: 1},
		},
	}
}

func TestMapCotizacion_ImagenSinFirmador(t *testing.T) {
	for name, f := range map[string]FirmadorURL{"sin firmador": nil, "firma fallida": firmadorCaido{}} {
		t.Run(name, func(t *testing.T) {
			resp := mapCotizacion(context.Background(), f, cotizacionConImagen())
			require.Len(t, resp.Items, 2)
			require.NotNil(t, resp.Items[0].ImagenKey)
			assert.Equal(t, "imagenes/2026/03/disco.jpg", *resp.Items[0].ImagenKey)
			assert.Nil(t, resp.Items[0].ImagenURL)
			assert.Nil(t, resp.Items[1].ImagenKey)
		})
	}
}

func TestMapCotizacion_ImagenFirmada(t *testing.T) {
	resp := mapCotizacion(context.Background(), firmadorOK{}, cotizacionConImagen())
	require.NotNil(t, resp.Items[0].ImagenURL)
	assert.Equal(t, "https://blobs.test/imagenes/2026/03/disco.jpg", *resp.Items[0].ImagenURL)
	assert.NotNil(t, resp.Items[0].ImagenKey)
	assert.Nil(t, resp.Items[1].ImagenURL)
}
