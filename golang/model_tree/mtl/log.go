package mtl

import "github.com/sirupsen/logrus"

var log = logrus.WithField("component", "mtl")
