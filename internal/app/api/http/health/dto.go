package health

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status  string `json:"status" example:"OK" doc:"Состояние сервиса"`
	Entries int    `json:"entries" example:"42" doc:"Число активных записей"`
}
