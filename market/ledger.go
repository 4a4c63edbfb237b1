package market

import (
	"fmt"
	"sync"
	"time"

	"github.com/blocktree/openwallet/log"
	"github.com/google/uuid"
)

//日志条目类型
const (
	LogInfo    = "info"
	LogSuccess = "success"
	LogWarning = "warning"
	LogError   = "error"
	LogTx      = "tx"
)

//活动类型
const (
	ActivityMint   = "mint"
	ActivityList   = "list"
	ActivityCancel = "cancel"
	ActivityBuy    = "buy"
)

//展示日志最多保留的条数，旧条目先丢弃
const displayLogCap = 50

type LogEntry struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type ActivityEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	TokenID   string `json:"tokenId"`
	Timestamp int64  `json:"timestamp"`
	Price     string `json:"price,omitempty"`
	Buyer     string `json:"buyer,omitempty"`
	Seller    string `json:"seller,omitempty"`
	Name      string `json:"name,omitempty"`
}

//ActivityLedger 记录展示日志和结构化活动事件。
//两者都按最新在前追加，展示日志有上限，活动事件不设上限。
type ActivityLedger struct {
	mu     sync.Mutex
	logs   []LogEntry
	events []ActivityEvent
	out    *log.OWLogger
}

func NewActivityLedger(out *log.OWLogger) *ActivityLedger {
	return &ActivityLedger{out: out}
}

//Log 追加一条展示日志
func (l *ActivityLedger) Log(logType string, format string, a ...interface{}) {
	entry := LogEntry{
		Message:   fmt.Sprintf(format, a...),
		Type:      logType,
		Timestamp: time.Now().Unix(),
	}

	l.mu.Lock()
	logs := make([]LogEntry, 0, displayLogCap)
	logs = append(logs, entry)
	if len(l.logs) >= displayLogCap {
		logs = append(logs, l.logs[:displayLogCap-1]...)
	} else {
		logs = append(logs, l.logs...)
	}
	l.logs = logs
	l.mu.Unlock()

	if l.out == nil {
		return
	}
	if logType == LogError {
		l.out.Std.Error("%s", entry.Message)
	} else {
		l.out.Std.Info("%s", entry.Message)
	}
}

//Record 追加一条活动事件，自动补全ID和时间戳
func (l *ActivityLedger) Record(evt ActivityEvent) ActivityEvent {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().Unix()
	}

	l.mu.Lock()
	events := make([]ActivityEvent, 0, len(l.events)+1)
	events = append(events, evt)
	events = append(events, l.events...)
	l.events = events
	l.mu.Unlock()

	return evt
}

//Entries 返回展示日志的副本，最新在前
func (l *ActivityLedger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	logs := make([]LogEntry, len(l.logs))
	copy(logs, l.logs)
	return logs
}

//Activities 返回活动事件的副本，最新在前
func (l *ActivityLedger) Activities() []ActivityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := make([]ActivityEvent, len(l.events))
	copy(events, l.events)
	return events
}

//Reset 清空展示日志。活动事件保留
func (l *ActivityLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = nil
}
