package main

import (
	"context"
	"log"

	"p2pbank/internal/container"
	"p2pbank/internal/logging"
)

func main() {
	ctx := context.Background()

	c, err := container.GetInstance(ctx)
	if err != nil {
		log.Fatalf("failed to initialize node: %v", err)
	}

	logging.Info("p2pbank node initialized", map[string]interface{}{
		"bank_code": c.Config.Bank.Get(),
		"p2p_port":  c.Config.P2P.Port,
	})

	if err := c.Start(); err != nil {
		log.Fatalf("failed to start node: %v", err)
	}
}
