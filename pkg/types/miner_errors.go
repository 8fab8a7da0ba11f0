// Package types 定义矿工相关的错误类型
package types

import (
	"errors"
	"fmt"
)

// InvalidInputError 输入非法（前缀/目标值格式错误），派发前拒绝，不重试
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// NewInvalidInput 构造输入错误
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// IsInvalidInputError 检查错误是否为输入错误
func IsInvalidInputError(err error) (*InvalidInputError, bool) {
	var target *InvalidInputError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// OracleUnavailableError 链预言机暂时不可用
//
// 由编排器使用刷新后的状态重试恢复。
type OracleUnavailableError struct {
	Op  string
	Err error
}

func (e *OracleUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle unavailable: %s", e.Op)
	}
	return fmt.Sprintf("oracle unavailable: %s: %v", e.Op, e.Err)
}

func (e *OracleUnavailableError) Unwrap() error { return e.Err }

// NewOracleUnavailable 构造预言机错误
func NewOracleUnavailable(op string, err error) error {
	return &OracleUnavailableError{Op: op, Err: err}
}

// IsOracleUnavailableError 检查错误是否为预言机不可用
func IsOracleUnavailableError(err error) (*OracleUnavailableError, bool) {
	var target *OracleUnavailableError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// WorkerFaultError 工作者故障，本轮致命
//
// 向上传播，不静默重试；下一轮前需重建工作者池。
type WorkerFaultError struct {
	WorkerID int
	Err      error
}

func (e *WorkerFaultError) Error() string {
	return fmt.Sprintf("worker %d fault: %v", e.WorkerID, e.Err)
}

func (e *WorkerFaultError) Unwrap() error { return e.Err }

// IsWorkerFaultError 检查错误是否为工作者故障
func IsWorkerFaultError(err error) (*WorkerFaultError, bool) {
	var target *WorkerFaultError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
