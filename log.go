package delimsql

import "github.com/sirupsen/logrus"

// Leveled logging helpers of the engine. They forward to the standard
// logrus logger so embedding programs configure level and output in one
// place.
var (
	Debugf = logrus.Debugf
	Infof  = logrus.Infof
	Warnf  = logrus.Warnf
	Errorf = logrus.Errorf
)

// SetLogLevel sets the verbosity of the engine's logging.
func SetLogLevel(level logrus.Level) {
	logrus.SetLevel(level)
}
