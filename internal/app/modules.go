package app

import (
	"github.com/vk/supertrace/internal/registry"
	"github.com/vk/supertrace/modules/print"
	"github.com/vk/supertrace/modules/socketio"
)

// coreModules is the definitive list of all renderer modules compiled into
// the supertrace binary.
var coreModules = []registry.Module{
	&print.Module{},
	&socketio.Module{},
}
