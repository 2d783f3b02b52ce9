package entity

import (
	"bytes"
	"encoding/json"
	"errors"
)

var jsonNull = []byte("null")

// Optional различает три состояния поля запроса:
// отсутствует (Set == false), передан null (Set && Null), передано значение.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some возвращает заданное значение
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null возвращает явно переданный null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present - поле передано и не равно null
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// UnmarshalJSON вызывается encoding/json только для ключей, которые есть в теле,
// включая литерал null
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON пишет null для отсутствующего или обнуленного поля
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}

// Scalar хранит исходный текст скалярного значения (строки, числа, bool).
// Приведение к нужному типу выполняет сервис, чтобы ошибки приведения
// возвращались как InvalidRequest, а не как ошибка разбора тела.
// null дает пустое значение, объекты и массивы отклоняются.
type Scalar string

// ErrNotScalar - вместо скаляра передан объект или массив
var ErrNotScalar = errors.New("expected a string, number or boolean")

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, jsonNull):
		*s = ""
		return nil
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return ErrNotScalar
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}

	*s = Scalar(data)
	return nil
}

func (s Scalar) String() string {
	return string(s)
}
