// cmd/seeduser/main.go: creates or updates the initial administrator.
// Uso: go run ./cmd/seeduser -username admin -password secreto
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"findautopart/internal/config"
	"findautopart/internal/infra"
	"findautopart/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "usuario administrador")
	password := flag.String("password", "", "contraseña (min 8)")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password requerido (min 8 caracteres)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	// NewDatabase applies pending migrations, so this also works on an empty DB.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (username, nombre, password_hash, rol)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = NOW()
	`, *username, *nombre, string(hash), model.RolAdministrador)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	log.Info().Str("username", *username).Msg("administrador creado/actualizado")
}
