package app

// Compiled-in modules. Each registers itself with core in init().
import (
	_ "github.com/flemzord/ghinline/internal/gateway"
	_ "github.com/flemzord/ghinline/modules/channel/telegram"
)
