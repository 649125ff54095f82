package app

import (
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/modules/arith"
	"github.com/specialistvlad/gridc/modules/buffer"
	"github.com/specialistvlad/gridc/modules/core"
	"github.com/specialistvlad/gridc/modules/env"
	"github.com/specialistvlad/gridc/modules/expr"
	"github.com/specialistvlad/gridc/modules/http_request"
	"github.com/specialistvlad/gridc/modules/print"
	"github.com/specialistvlad/gridc/modules/text"
)

// coreModules is the definitive list of all modules that are compiled into
// the gridc binary.
var coreModules = []registry.Module{
	&core.Module{},
	&arith.Module{},
	&text.Module{},
	&buffer.Module{},
	&expr.Module{},
	&env.Module{},
	&print.Module{},
	&http_request.Module{},
}
