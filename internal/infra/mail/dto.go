package mail

type leadAlertData struct {
	Profile   string
	Email     string
	Phone     string
	FirstName string
	Verdict   string
	Score     string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}
