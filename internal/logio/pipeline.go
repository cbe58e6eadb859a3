package logio

import "github.com/akshatnamdeo/osfl/internal/token"

// Tracef logs a line at the "TRACE" level, the level cmd/osfl's debug-mode
// instruction trace uses (it hands the VM Leveledf("TRACE") directly).
func (log *Logger) Tracef(mess string, args ...interface{}) {
	log.Printf("TRACE", mess, args...)
}

// PipelineErrorf reports a located pipeline error using the wire format
// "Error in <file> at line <L>, column <C>:\n<message>". It also marks the
// logger's exit code non-zero via Errorf's bookkeeping.
func (log *Logger) PipelineErrorf(loc token.SourceLocation, mess string, args ...interface{}) {
	log.Lock()
	defer log.Unlock()
	log.unwrap()
	log.printf("", "Error in %s at line %d, column %d:", loc.File, loc.Line, loc.Column)
	log.printf("", mess, args...)
	log.exitCode = 1
}
