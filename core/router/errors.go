package router

import "errors"

var ErrZeroAddress = errors.New("zero destination address")
var ErrPostconditionFailed = errors.New("postcondition failed")
var ErrNativeBalanceMismatch = errors.New("native balance mismatch")
var ErrReentrantCall = errors.New("reentrant call")
var ErrBadCompareOp = errors.New("unknown compare op")
