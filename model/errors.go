package model

import "errors"

// 引擎的三类错误。调用方使用 errors.Is 判断类别，具体原因通过 %w 包装在消息里。
var (
	// ErrInvalidParameter 非正的窗口/周期/倍数，或短周期不小于长周期
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidInput 空序列、日期乱序或重复、缺失需要的价格字段
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData 序列长度不足以计算指标
	ErrInsufficientData = errors.New("insufficient data")
)
