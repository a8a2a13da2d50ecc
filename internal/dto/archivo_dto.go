package dto

type SubirArchivoRequest struct {
	Nombre      string `json:"nombre"       validate:"required,min=1,max=200"`
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp"`
}

type SubirArchivoResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ReadURL   string            `json:"read_url"`
}
