package router

import (
	"time"

	"findautopart/internal/config"
	"findautopart/internal/handler"
	"findautopart/internal/infra"
	"findautopart/internal/middleware"
	"findautopart/internal/model"
	"findautopart/internal/repository"
	"findautopart/internal/service"
	"findautopart/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	taller    = model.RolTaller
	proveedor = model.RolProveedor
	admin     = model.RolAdministrador
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// blobs may be nil when AWS is not configured; image keys are then returned
// unsigned and /v1/archivos answers 503.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, blobs *infra.BlobStore, cbs worker.Breakers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	var firmador service.FirmadorURL
	var almacen handler.AlmacenBlobs
	if blobs != nil {
		firmador = blobs
		almacen = blobs
	}
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	tallerRepo := repository.NewTallerRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	cotizacionRepo := repository.NewCotizacionRepository(db)
	ofertaRepo := repository.NewOfertaRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, tallerRepo, proveedorRepo, categoriaRepo, cfg)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	tallerSvc := service.NewTallerService(tallerRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo, categoriaRepo)
	cotizacionSvc := service.NewCotizacionService(cotizacionRepo, tallerRepo, categoriaRepo, ofertaRepo, pedidoRepo, dispatcher, firmador)
	matchingSvc := service.NewMatchingService(cotizacionRepo, proveedorRepo, firmador)
	ofertaSvc := service.NewOfertaService(ofertaRepo, cotizacionRepo, proveedorRepo, dispatcher)
	pedidoSvc := service.NewPedidoService(pedidoRepo, cotizacionRepo, ofertaRepo, tallerRepo, proveedorRepo, dispatcher)
	reporteSvc := service.NewReporteService(reporteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	perfilH := handler.NewPerfilHandler(tallerSvc, proveedorSvc)
	cotizacionesH := handler.NewCotizacionesHandler(cotizacionSvc, matchingSvc)
	ofertasH := handler.NewOfertasHandler(ofertaSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	archivosH := handler.NewArchivosHandler(almacen)
	reportesH := handler.NewReportesHandler(reporteSvc)
	adminH := handler.NewAdminHandler(rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, cbs))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		cot := v1.Group("/cotizaciones")
		{
			// /visibles before /:id
			cot.GET("/visibles", middleware.RequireRole(proveedor), cotizacionesH.Visibles)
			cot.POST("", middleware.RequireRole(taller), cotizacionesH.Crear)
			cot.GET("", middleware.RequireRole(taller, admin), cotizacionesH.Listar)
			cot.GET("/:id", cotizacionesH.Obtener)
			cot.PUT("/:id", middleware.RequireRole(taller), cotizacionesH.Actualizar)
			cot.DELETE("/:id", middleware.RequireRole(taller), cotizacionesH.Eliminar)
			cot.POST("/:id/cerrar", middleware.RequireRole(taller), cotizacionesH.Cerrar)
			cot.POST("/:id/cancelar", middleware.RequireRole(taller), cotizacionesH.Cancelar)
			cot.POST("/:id/vista", middleware.RequireRole(proveedor), cotizacionesH.MarcarVista)
			cot.POST("/:id/ofertas", middleware.RequireRole(proveedor), ofertasH.Crear)
			cot.GET("/:id/ofertas", ofertasH.ListarPorCotizacion)
			cot.GET("/:id/ranking", middleware.RequireRole(taller, admin), ofertasH.Ranking)
		}

		v1.GET("/ofertas", middleware.RequireRole(proveedor), ofertasH.ListarMias)
		v1.GET("/ofertas/:id", ofertasH.Obtener)

		// Role partition of estado changes is enforced in PedidoService.
		ped := v1.Group("/pedidos")
		{
			ped.POST("", middleware.RequireRole(taller), pedidosH.Crear)
			ped.GET("", pedidosH.Listar)
			ped.GET("/:id", pedidosH.Obtener)
			ped.PATCH("/:id/estado", pedidosH.CambiarEstado)
			ped.POST("/:id/cancelar", pedidosH.Cancelar)
			ped.GET("/:id/pdf", pedidosH.PDF)
		}

		v1.POST("/archivos", middleware.RequireRole(taller, proveedor), archivosH.Subir)

		perfil := v1.Group("/perfil")
		{
			perfil.GET("/taller", middleware.RequireRole(taller), perfilH.ObtenerTaller)
			perfil.PUT("/taller", middleware.RequireRole(taller), perfilH.ActualizarTaller)
			perfil.GET("/proveedor", middleware.RequireRole(proveedor), perfilH.ObtenerProveedor)
			perfil.PUT("/proveedor", middleware.RequireRole(proveedor), perfilH.ActualizarProveedor)
		}

		// Categorías: administrador writes, every authenticated user reads
		v1.GET("/categorias", categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole(admin))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole(admin))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}

		v1.GET("/reportes/resumen", middleware.RequireRole(admin), reportesH.Resumen)
		v1.POST("/admin/dlq/notificaciones/replay", middleware.RequireRole(admin), adminH.ReplayNotificaciones)
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
