package message

import "errors"

var errEmptyContent = errors.New("content is blank")
