package collection

// JWTFields поля, попадающие в токен сессии и в тип Me:
// сначала поле username, затем все поля с saveToJWT в порядке объявления.
// Список никогда не бывает пустым для auth коллекции.
func (c *Collection) JWTFields() []Field {
	if c.Auth == nil {
		return nil
	}

	out := []Field{{
		Name:     c.Auth.UseAsUsername,
		Type:     FieldText,
		Required: true,
	}}
	for _, f := range c.Fields {
		if f.SaveToJWT && f.Name != c.Auth.UseAsUsername {
			out = append(out, f)
		}
	}
	return out
}

// Claims выбирает из документа значения полей для токена
func (c *Collection) Claims(data map[string]interface{}) map[string]interface{} {
	jwtFields := c.JWTFields()
	claims := make(map[string]interface{}, len(jwtFields))
	for _, f := range jwtFields {
		if v, ok := data[f.Name]; ok {
			claims[f.Name] = v
		}
	}
	return claims
}
