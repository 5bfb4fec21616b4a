package entity

import "errors"

var (
	// ErrJunctionNotFound 未知路口ID
	// 说明：热路径上的预期结果，作为返回值传递，不panic
	ErrJunctionNotFound = errors.New("junction not found")
	// ErrUnknownDirection 未知的进口道方向标签
	ErrUnknownDirection = errors.New("unknown approach direction")
)
