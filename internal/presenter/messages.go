package presenter

import (
	"errors"

	"github.com/alexivanou/cityweather/internal/weather"
)

const (
	msgInvalidInput  = "Please enter a valid city name."
	msgEmptyResponse = "No data received from the weather service."
	msgDecode        = "Could not read weather data. Please try again."
	msgUnknown       = "Something went wrong. Please try again."
)

// Message turns a fetch error into the single line shown on the screen.
// Decode failures never expose parser detail.
func Message(err error) string {
	var fe *weather.FetchError
	switch weather.KindOf(err) {
	case weather.KindInvalidInput:
		return msgInvalidInput
	case weather.KindEmptyResponse:
		return msgEmptyResponse
	case weather.KindDecode:
		return msgDecode
	case weather.KindTransport:
		if errors.As(err, &fe) && fe.Err != nil {
			return fe.Err.Error()
		}
		return err.Error()
	}
	if err == nil {
		return ""
	}
	return msgUnknown
}

func kindName(err error) string {
	return weather.KindOf(err).String()
}
