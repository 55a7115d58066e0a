package mqtt

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientConfig holds MQTT broker settings.
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

func ConfigFromEnv() ClientConfig {
	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = "drowsywatch"
	}
	return ClientConfig{
		Broker:   os.Getenv("MQTT_BROKER"),
		ClientID: clientID,
		Username: os.Getenv("MQTT_USERNAME"),
		Password: os.Getenv("MQTT_PASSWORD"),
	}
}

// NewClient connects to the broker with auto reconnect enabled.
func NewClient(config ClientConfig, log *logrus.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info("MQTT: Connection established")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warnf("MQTT: Connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Infof("MQTT Client: Connected to broker: %s", config.Broker)
	return client, nil
}
