package prom

import (
	"reflect"

	"go.uber.org/zap"
)

// Log injects the logger of the scheduler, named after the system.
type Log struct {
	noAccess
	*zap.Logger
}

func (l *Log) init() SystemParamState {
	return l
}

func (l *Log) getValue(sc systemContext) reflect.Value {
	if l.Logger == nil {
		l.Logger = sc.logger.With(zap.String("system", sc.system.Name))
	}

	return reflect.ValueOf(l).Elem()
}

func (l *Log) cleanupValue() {
}

func (*Log) valueType() reflect.Type {
	return reflect.TypeFor[Log]()
}
