package proxy

import "civic-apps/internal/balancesheet"

type healthResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}

type balanceSheetResponse struct {
	DocumentID string              `json:"document_id"`
	Found      bool                `json:"found"`
	Table      *balancesheet.Table `json:"table,omitempty"`
}
