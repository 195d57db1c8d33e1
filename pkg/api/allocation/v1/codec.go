// Package allocationv1 описывает gRPC API сервиса распределения полосы.
//
// Сообщения передаются в JSON: кодек регистрируется под именем "json",
// клиенты выбирают его через grpc.CallContentSubtype(CodecName).
package allocationv1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName имя кодека и content-subtype запросов
const CodecName = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec кодек gRPC поверх encoding/json
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}
