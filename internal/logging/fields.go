package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// FetchFields 提供 worker 拦截请求时的公共字段：请求类别、缓存命中与响应来源。
func FetchFields(generation, method, url, mode string, cacheHit bool, source string) logrus.Fields {
	return logrus.Fields{
		"generation": generation,
		"method":     method,
		"url":        url,
		"mode":       mode,
		"cache_hit":  cacheHit,
		"source":     source,
	}
}

// LedgerFields 用于台账读写日志，op 取 add/remove/clear 等。
func LedgerFields(op string, entries int) logrus.Fields {
	return logrus.Fields{
		"action":  "ledger",
		"op":      op,
		"entries": entries,
	}
}

// RequestFields 描述 shell 转发的一次请求，cache/source 取自 worker 响应头。
func RequestFields(method, path, upstream string, status int, cache, source string) logrus.Fields {
	return logrus.Fields{
		"action":          "proxy",
		"method":          method,
		"path":            path,
		"upstream":        upstream,
		"upstream_status": status,
		"cache":           cache,
		"source":          source,
	}
}
