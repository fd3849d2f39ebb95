package api

// JobAcceptedResponse はジョブ受付時のレスポンスです。
type JobAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// JobResponse はジョブの現在の状態です。実行中は進捗段階を、
// 成功後は最新版の番号とロック診断を含みます。
type JobResponse struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	Prompt    string        `json:"prompt"`
	SlideID   string        `json:"slide_id,omitempty"`
	Progress  int           `json:"progress"`
	Stage     string        `json:"stage,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Version   int           `json:"version,omitempty"`
	Error     string        `json:"error,omitempty"`
	Lock      *LockMetadata `json:"lock,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}
