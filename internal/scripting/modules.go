package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the engine.* tables into L: engine.log.debug,
// engine.log.info and engine.log.warn forward a message to logger.
func registerModules(L *lua.LState, logger *zap.Logger, source string) {
	engine := L.NewTable()
	logTable := L.NewTable()
	for name, emit := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
	} {
		emit := emit
		L.SetField(logTable, name, L.NewFunction(func(L *lua.LState) int {
			emit(L.CheckString(1), zap.String("script", source))
			return 0
		}))
	}
	L.SetField(engine, "log", logTable)
	L.SetGlobal("engine", engine)
}
