package settings

import "errors"

// errUnchanged aborts a config update that has nothing to write.
var errUnchanged = errors.New("config unchanged")
