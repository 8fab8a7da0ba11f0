// Package types provides HTTP response type definitions.
package types

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// WithTimestamp 添加时间戳
func (r *SuccessResponse) WithTimestamp(timestamp string) *SuccessResponse {
	r.Timestamp = timestamp
	return r
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string `json:"status"` // ok, degraded
	MinerState string `json:"minerState"`
	Uptime     string `json:"uptime"`
	Timestamp  string `json:"timestamp"`
}

// JournalResponse 已找到 nonce 列表
type JournalResponse struct {
	Entries interface{} `json:"entries"`
	Count   int         `json:"count"`
}
