package logger

// LogRequest logs HTTP request information at a level matching its status
func LogRequest(method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	default:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	}
}

// LogTransfer logs the outcome of a single image transfer
func LogTransfer(url, file string, success bool, err error) {
	fields := map[string]interface{}{
		"url":     url,
		"file":    file,
		"success": success,
	}

	log := GetLogger().WithFields(fields)

	if err != nil {
		log.WithError(err).Error("Transfer failed")
	} else if success {
		log.Info("Transfer completed")
	} else {
		log.Debug("Transfer skipped")
	}
}
