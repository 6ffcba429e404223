package sidecar

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "sidecar")
