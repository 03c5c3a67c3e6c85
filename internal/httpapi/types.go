package httpapi

type healthResponse struct {
	Status string `json:"status"`
}

type saveResultResponse struct {
	ID string `json:"id"`
}
