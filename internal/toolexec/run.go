package toolexec

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"furymod/internal/logging"
	"furymod/internal/services"
)

// tailLines is how much tool output an error message keeps.
const tailLines = 5

// Run executes binary through exec, logging every output line at debug
// level. A failure is wrapped as ErrExternalTool under stage, with the tail
// of the output in the message.
func Run(ctx context.Context, exec Executor, logger *slog.Logger, stage, binary string, args []string) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	tool := filepath.Base(binary)
	var tail []string
	err := exec.Run(ctx, binary, args, func(line string) {
		logger.Debug(tool+" output", logging.String("line", line))
		if len(tail) == tailLines {
			tail = tail[1:]
		}
		tail = append(tail, line)
	})
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf("%s failed", tool)
	if len(tail) > 0 {
		msg += ": " + strings.Join(tail, " | ")
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%v)", err, ctxErr)
	}
	return services.Wrap(services.ErrExternalTool, stage, tool, msg, err)
}
