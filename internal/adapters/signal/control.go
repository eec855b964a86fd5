package signal

import "github.com/dkeye/Nexus/internal/domain"

func (ctl *SignalWSController) handlePing(sid domain.ConnectionID) {
	ctl.send(sid, domain.EventPong, nil)
}
