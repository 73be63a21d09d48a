package logx

import (
	"fmt"
	"log"
	"strings"
)

// Info пишет строку вида: lvl=info req_id=... op=... msg="..." k=v ...
func Info(l *log.Logger, reqID, op, msg string, kv ...any) {
	l.Print(line("info", reqID, op, msg, nil, kv))
}

// Error — то же, плюс err="...".
func Error(l *log.Logger, reqID, op, msg string, err error, kv ...any) {
	l.Print(line("error", reqID, op, msg, err, kv))
}

func line(lvl, reqID, op, msg string, err error, kv []any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "lvl=%s req_id=%s op=%s msg=%q", lvl, reqID, op, msg)
	if err != nil {
		fmt.Fprintf(&sb, " err=%q", err.Error())
	}
	for i := 0; i < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fmt.Fprintf(&sb, " %s=(missing)", k)
			break
		}
		switch v := kv[i+1].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, v)
		default:
			fmt.Fprintf(&sb, " %s=%v", k, v)
		}
	}
	return sb.String()
}
