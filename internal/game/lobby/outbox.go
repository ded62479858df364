package lobby

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/types"
)

// recordTimeout 写入单局结果的超时
const recordTimeout = 5 * time.Second

type delivery struct {
	to  types.ClientInterface
	msg *protocol.Message
}

type gameResult struct {
	name string
	won  bool
}

// outbox 持锁期间收集的待发送通知，按产生顺序发送
type outbox struct {
	deliveries []delivery
	results    []gameResult
}

func (o *outbox) send(to types.ClientInterface, msgType protocol.MessageType, payload any) {
	o.deliveries = append(o.deliveries, delivery{to: to, msg: codec.MustNewMessage(msgType, payload)})
}

func (o *outbox) sendAll(members []*Member, msgType protocol.MessageType, payload any) {
	if len(members) == 0 {
		return
	}
	msg := codec.MustNewMessage(msgType, payload)
	for _, m := range members {
		o.deliveries = append(o.deliveries, delivery{to: m.Client, msg: msg})
	}
}

func (o *outbox) record(name string, won bool) {
	o.results = append(o.results, gameResult{name: name, won: won})
}

// flush 发送所有通知；对局结果异步写入，不阻塞调用方
func (o *outbox) flush(recorder types.ResultRecorder) {
	for _, d := range o.deliveries {
		d.to.SendMessage(d.msg)
	}
	if recorder == nil || len(o.results) == 0 {
		return
	}

	results := o.results
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		for _, r := range results {
			if err := recorder.RecordGameResult(ctx, r.name, r.won); err != nil {
				log.Error().Err(err).Str("player", r.name).Msg("failed to record game result")
			}
		}
	}()
}
