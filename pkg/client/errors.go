package client

import "errors"

var ErrNotFound = errors.New("not found")
var ErrRequest = errors.New("request failed")
var ErrBadResponse = errors.New("bad response")
var ErrInternal = errors.New("internal error")
