package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/picture-game/internal/protocol"
)

// 入站消息与编码缓冲复用，绘画坐标流量大时减少分配
var (
	inbound = sync.Pool{New: func() any { return new(protocol.Message) }}
	buffers = sync.Pool{New: func() any { return new(bytes.Buffer) }}
)

// Release 归还 Decode 得到的消息。
// 出站消息会被多个接收者共享，不能归还。
func Release(msg *protocol.Message) {
	if msg == nil {
		return
	}
	*msg = protocol.Message{}
	inbound.Put(msg)
}

func acquireMessage() *protocol.Message {
	return inbound.Get().(*protocol.Message)
}

func acquireBuffer() *bytes.Buffer {
	return buffers.Get().(*bytes.Buffer)
}

// 超大缓冲不回收，避免单条异常消息长期占用内存
const maxPooledBuffer = 64 << 10

func releaseBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	buffers.Put(buf)
}
