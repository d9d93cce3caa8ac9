// Package command реализует реестр команд бота и единый формат ответа.
//
// Реестр — единственный источник определений команд: имена, аргументы,
// разрешенные роли, справка и примеры. Один и тот же ответ-конверт
// возвращается обоим фронтендам: Telegram рендерит поле message,
// веб-дашборд дополнительно использует data и web_redirect.
package command

// FormatMarkdown режим форматирования ответа по умолчанию.
const FormatMarkdown = "markdown"

// Response единый конверт ответа любой команды. Создается заново на
// каждый вызов и никогда не сохраняется.
type Response struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	WebRedirect string         `json:"web_redirect,omitempty"`
	FormatMode  string         `json:"format_mode"`
}

// OK возвращает успешный ответ с текстовым сообщением.
func OK(message string) Response {
	return Response{Success: true, Message: message, FormatMode: FormatMarkdown}
}

// OKWithData возвращает успешный ответ с сообщением и структурированными
// данными для веб-интерфейса.
func OKWithData(message string, data map[string]any) Response {
	return Response{Success: true, Message: message, Data: data, FormatMode: FormatMarkdown}
}

// Fail возвращает ответ с ошибкой и текстовым сообщением.
func Fail(message string) Response {
	return Response{Success: false, Message: message, FormatMode: FormatMarkdown}
}

// WithRedirect добавляет к ответу подсказку перехода для веб-интерфейса.
func (r Response) WithRedirect(path string) Response {
	r.WebRedirect = path
	return r
}

// WithData добавляет к ответу структурированные данные.
func (r Response) WithData(data map[string]any) Response {
	r.Data = data
	return r
}
