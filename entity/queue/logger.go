package queue

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "queue")
