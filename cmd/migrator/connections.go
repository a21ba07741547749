package main

import (
	"fmt"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/logger"
)

// openConnection подключается и проверяет соединение
func openConnection(cfg config.DatabaseConfig, l *logger.Log) (connectors.DatabaseConnector, error) {
	conn, err := connectors.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s %s: %w", cfg.Driver, cfg.Name, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Disconnect()
		return nil, fmt.Errorf("failed to ping %s %s: %w", cfg.Driver, cfg.Name, err)
	}
	l.Infof("%s connection %s successful", cfg.Driver, cfg.Name)
	return conn, nil
}

// openConnections открывает все подключения из конфига по именам
func openConnections(cfg *config.Config, l *logger.Log) (map[string]connectors.DatabaseConnector, error) {
	connections := make(map[string]connectors.DatabaseConnector, len(cfg.Connections))
	for _, dbCfg := range cfg.Connections {
		conn, err := openConnection(dbCfg, l)
		if err != nil {
			closeConnections(connections, l)
			return nil, err
		}
		connections[dbCfg.Name] = conn
	}
	return connections, nil
}

func closeConnections(connections map[string]connectors.DatabaseConnector, l *logger.Log) {
	for name, conn := range connections {
		if err := conn.Disconnect(); err != nil {
			l.Errorf("failed to close connection %s: %v", name, err)
		}
	}
}
