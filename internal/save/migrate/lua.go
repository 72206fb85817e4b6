package migrate

import (
	"fmt"
	"log"
	"os"

	lua "github.com/Shopify/go-lua"

	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
	"github.com/louisbranch/continuity/internal/save/envelope"
)

// luaEntrypoint is the function a migration script must define. It receives
// the payload's wire JSON and returns the migrated wire JSON.
const luaEntrypoint = "migrate"

// LoadScript reads a Lua migration script and wraps it as a migration Func.
//
// The script must define migrate(payload_json) -> payload_json. Like every
// migration Func the result never fails: any script error is logged and the
// payload passes through unchanged for that hop. The payload's version field
// stays under the manager's control regardless of what the script returns.
func LoadScript(path string, logger *log.Logger) (Func, error) {
	if logger == nil {
		logger = log.Default()
	}
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMigrationScript, fmt.Sprintf("read migration script %s", path), err)
	}
	if err := checkScript(string(script)); err != nil {
		return nil, err
	}

	source := string(script)
	return func(env *envelope.Envelope) {
		if err := runScript(source, env); err != nil {
			logger.Printf("WARN migration script %s failed, payload unchanged: %v", path, err)
		}
	}, nil
}

// checkScript compiles the script once and verifies it defines the
// entrypoint, so registration fails fast instead of warning on every load.
func checkScript(source string) error {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.DoString(state, source); err != nil {
		return apperrors.Wrap(apperrors.CodeMigrationScript, "compile migration script", err)
	}
	state.Global(luaEntrypoint)
	defined := state.IsFunction(-1)
	state.Pop(1)
	if !defined {
		return apperrors.New(apperrors.CodeMigrationScript, "migration script must define migrate(payload_json)")
	}
	return nil
}

func runScript(source string, env *envelope.Envelope) error {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.DoString(state, source); err != nil {
		return fmt.Errorf("run script: %w", err)
	}

	data, err := envelope.Encode(*env)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	state.Global(luaEntrypoint)
	if !state.IsFunction(-1) {
		state.Pop(1)
		return fmt.Errorf("script does not define %s", luaEntrypoint)
	}
	state.PushString(string(data))
	if err := state.ProtectedCall(1, 1, 0); err != nil {
		return fmt.Errorf("call %s: %w", luaEntrypoint, err)
	}

	out, ok := state.ToString(-1)
	state.Pop(1)
	if !ok {
		return fmt.Errorf("%s must return a JSON string", luaEntrypoint)
	}

	migrated, err := envelope.Decode([]byte(out))
	if err != nil {
		return fmt.Errorf("decode migrated payload: %w", err)
	}

	// The manager owns version advancement.
	migrated.Version = env.Version
	*env = migrated
	return nil
}
