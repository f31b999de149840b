// Package i18n renders operator-facing messages in the operator's language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	Usage               = "usage"
	ErrorPrefix         = "error-prefix"
	WarningPrefix       = "warning-prefix"
	ServiceNotFound     = "service-not-found"
	InvalidPort         = "invalid-port"
	VenvNotFound        = "venv-not-found"
	InterpreterNotFound = "interpreter-not-found"
	NoEntryFile         = "no-entry-file"
	Starting            = "starting"
	Started             = "started"
	LogFile             = "log-file"
	SpawnFailed         = "spawn-failed"
	PIDFileFailed       = "pid-file-failed"
)

var supported = []language.Tag{language.English, language.Chinese}

var matcher = language.NewMatcher(supported)

// messages holds the format strings per language. Started takes the PID as
// a string so the printer does not group its digits.
var messages = map[language.Tag]map[string]string{
	language.English: {
		Usage:               "usage: %s <service_name> <port>\nexample: %s gaode_weather 8000",
		ErrorPrefix:         "error: ",
		WarningPrefix:       "warning: ",
		ServiceNotFound:     "service directory %s does not exist",
		InvalidPort:         "port must be a number, got %q",
		VenvNotFound:        "virtual environment directory %s does not exist",
		InterpreterNotFound: "cannot locate the python interpreter in virtual environment %s",
		NoEntryFile:         "no main.py or __main__.py in %s, importing %s.main and calling main()",
		Starting:            "starting service %s on port %s...",
		Started:             "service started, PID: %s",
		LogFile:             "log file: %s",
		SpawnFailed:         "service failed to start, check the log file: %s",
		PIDFileFailed:       "could not write PID file %s",
	},
	language.Chinese: {
		Usage:               "用法: %s <服务名> <端口>\n示例: %s gaode_weather 8000",
		ErrorPrefix:         "错误: ",
		WarningPrefix:       "警告: ",
		ServiceNotFound:     "服务目录 %s 不存在",
		InvalidPort:         "端口必须是数字, 收到 %q",
		VenvNotFound:        "虚拟环境目录 %s 不存在",
		InterpreterNotFound: "无法在虚拟环境 %s 中找到 Python 解释器",
		NoEntryFile:         "%s 中未找到 main.py 或 __main__.py, 尝试导入 %s.main 并调用 main()",
		Starting:            "正在启动服务 %s, 端口 %s...",
		Started:             "服务已启动, PID: %s",
		LogFile:             "日志文件: %s",
		SpawnFailed:         "服务启动失败, 请查看日志文件: %s",
		PIDFileFailed:       "无法写入 PID 文件 %s",
	},
}

var cat = mustBuild()

func mustBuild() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, format := range msgs {
			if err := b.SetString(tag, key, format); err != nil {
				panic("i18n: " + key + ": " + err.Error())
			}
		}
	}
	return b
}

// Match returns the best supported language for lang.
// Unparseable or unsupported tags fall back to English.
func Match(lang string) language.Tag {
	tag, err := language.Parse(normalize(lang))
	if err != nil {
		return language.English
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// New returns a Printer for the best supported match of lang.
func New(lang string) *message.Printer {
	return message.NewPrinter(Match(lang), message.Catalog(cat))
}

// Detect picks the language from POSIX locale variables, in the order
// LANGUAGE, LC_ALL, LC_MESSAGES, LANG.
func Detect(lookup func(string) (string, bool)) string {
	for _, key := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v, ok := lookup(key); ok && v != "" {
			// LANGUAGE may be a colon-separated preference list.
			return strings.Split(v, ":")[0]
		}
	}
	return ""
}

// normalize turns POSIX locale names like zh_CN.UTF-8 into BCP 47 tags.
func normalize(lang string) string {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "C" || lang == "POSIX" {
		return "en"
	}
	return strings.ReplaceAll(lang, "_", "-")
}
