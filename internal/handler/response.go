package handler

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type CreatedUserResponse struct {
	ID int64 `json:"id"`
}

type LoginResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
