package scan

type CallbackRequest struct {
	VersionID string `json:"versionId" binding:"required,uuid"`
	Status    string `json:"status" binding:"required,oneof=clean blocked"`
	Reason    string `json:"reason" binding:"omitempty,max=1024"`
}

type CallbackResponse struct {
	VersionID string `json:"versionId"`
	VirusScan string `json:"virusScan"`
}
