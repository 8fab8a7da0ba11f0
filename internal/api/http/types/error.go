// Package types provides HTTP error type definitions.
package types

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string      `json:"code"`                // 错误码
	Message   string      `json:"message"`             // 错误消息
	Details   interface{} `json:"details,omitempty"`   // 详细信息
	RequestID string      `json:"requestId,omitempty"` // 请求ID
	Timestamp string      `json:"timestamp,omitempty"` // 时间戳
}

// 错误码常量
const (
	// 通用错误码（400-499）
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrNotFound        = "NOT_FOUND"

	// 矿工错误码
	ErrMinerConflict = "MINER_CONFLICT" // 已在运行 / 当前状态不允许启动
	ErrMinerStop     = "MINER_STOP_FAILED"

	// 服务器错误码（500-599）
	ErrInternal           = "INTERNAL"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details interface{}) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithRequestID 添加请求ID
func (r *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	r.Error.RequestID = requestID
	return r
}

// WithTimestamp 添加时间戳
func (r *ErrorResponse) WithTimestamp(timestamp string) *ErrorResponse {
	r.Error.Timestamp = timestamp
	return r
}
