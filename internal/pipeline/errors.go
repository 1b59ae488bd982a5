package pipeline

import "errors"

var errNoExtractor = errors.New("no extraction provider configured")
