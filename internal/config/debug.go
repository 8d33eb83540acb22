package config

import "os"

func IsDebug() bool {
	return os.Getenv("EDA_DEBUG") == "1"
}
