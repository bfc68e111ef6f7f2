package fl

import "errors"

var (
	ErrModelLength   = errors.New("model length does not match round parameters")
	ErrDataType      = errors.New("model data type does not match round parameters")
	ErrInvalidValue  = errors.New("model value is not representable in its data type")
	ErrUnknownPhase  = errors.New("unknown round phase")
	ErrSignature     = errors.New("invalid update signature")
	ErrNoUpdates     = errors.New("no updates to aggregate")
	ErrInvalidScalar = errors.New("update scalar must be a positive number")
)
