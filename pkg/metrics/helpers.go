package metrics

import (
	"database/sql"
	"time"
)

// Timer измеряет длительность операции от момента создания
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

func (t *Timer) Seconds() float64 {
	return t.Duration().Seconds()
}

// ---- БД ----

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
)

// DbTimer - замер одного запроса к таблице
type DbTimer struct {
	Timer
	service   string
	operation DbOperation
	table     string
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{Timer: *NewTimer(), service: service, operation: op, table: table}
}

func (t *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(t.service, string(t.operation), t.table).Observe(t.Seconds())
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// RecordDbPoolStats выгружает состояние пула соединений database/sql
func RecordDbPoolStats(service string, stats sql.DBStats) {
	DbConnectionsOpen.WithLabelValues(service, "idle").Set(float64(stats.Idle))
	DbConnectionsOpen.WithLabelValues(service, "in_use").Set(float64(stats.InUse))
}

// ---- Redis ----

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

type RedisTimer struct {
	Timer
	service   string
	operation RedisOperation
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{Timer: *NewTimer(), service: service, operation: op}
}

func (t *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(t.service, string(t.operation)).Observe(t.Seconds())
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

// ---- Kafka ----

// KafkaProduceTimer завершается ровно одним вызовом Success или Error
type KafkaProduceTimer struct {
	Timer
	service string
	topic   string
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{Timer: *NewTimer(), service: service, topic: topic}
}

func (t *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(t.service, t.topic).Inc()
	KafkaProduceDuration.WithLabelValues(t.service, t.topic).Observe(t.Seconds())
}

func (t *KafkaProduceTimer) Error() {
	KafkaErrors.WithLabelValues(t.service, t.topic, "produce").Inc()
}
