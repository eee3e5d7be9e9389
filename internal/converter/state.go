package converter

import (
	"go.uber.org/zap"
)

// State — этап обработки одного файла.
type State int

const (
	StateConfiguringInput State = iota
	StateChunking
	StateRequesting
	StateAssembling
	StateWriting
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateConfiguringInput:
		return "configuring_input"
	case StateChunking:
		return "chunking"
	case StateRequesting:
		return "requesting"
	case StateAssembling:
		return "assembling"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// job — одна конвертация: id, файл и пройденные состояния.
type job struct {
	id      string
	input   string
	history []State
	log     *zap.Logger
}

func (j *job) enter(s State) {
	j.history = append(j.history, s)
	j.log.Debug("state changed", zap.Stringer("state", s))
}

func (j *job) state() State {
	if len(j.history) == 0 {
		return StateConfiguringInput
	}
	return j.history[len(j.history)-1]
}

func (j *job) abort(err error) error {
	from := j.state()
	j.enter(StateAborted)
	j.log.Error("conversion aborted", zap.Stringer("from", from), zap.Error(err))
	return err
}
