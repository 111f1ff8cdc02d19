package i18n

import (
	"os"
	"strings"
)

var CurrentLang = "en"

// key -> language -> text
var messages = map[string]map[string]string{
	"header_title": {
		"en": "   REPACKGET CONFIGURATION",
		"es": "   CONFIGURACIÓN DE REPACKGET",
	},
	"prompt_download_root": {
		"en": "Download root directory",
		"es": "Directorio raíz de descargas",
	},
	"prompt_extension": {
		"en": "Unpacked ad-blocker extension directory (empty for none)",
		"es": "Directorio de la extensión bloqueadora descomprimida (vacío para ninguna)",
	},
	"success_msg": {
		"en": "\n✅ Configuration saved to: %s",
		"es": "\n✅ Configuración guardada en: %s",
	},
	"error_mkdir": {
		"en": "Error creating config directory: %s",
		"es": "Error creando directorio de config: %s",
	},
	"error_save": {
		"en": "Error saving configuration: %s",
		"es": "Error guardando configuración: %s",
	},
	"config_missing": {
		"en": "No config file found, using defaults.",
		"es": "No se encontró fichero de configuración, usando valores por defecto.",
	},
	"config_read_error": {
		"en": "Error reading config file: %v",
		"es": "Error leyendo el fichero de configuración: %v",
	},
	"config_decode_error": {
		"en": "Error decoding config: %v",
		"es": "Error decodificando la configuración: %v",
	},
	"prompt_title": {
		"en": "Enter the name of the game you want to download",
		"es": "Introduce el nombre del juego que quieres descargar",
	},
	"prompt_choice": {
		"en": "Enter the number of your choice",
		"es": "Introduce el número de tu elección",
	},
	"run_start": {
		"en": "🚀 Starting download run for \"%s\"",
		"es": "🚀 Iniciando descarga de \"%s\"",
	},
	"dir_ready": {
		"en": "📁 Download directory: %s",
		"es": "📁 Directorio de descarga: %s",
	},
	"dir_replaced": {
		"en": "Removing existing directory %s (previous contents are lost)",
		"es": "Eliminando el directorio existente %s (se pierde su contenido)",
	},
	"searching": {
		"en": "🔍 Searching: %s",
		"es": "🔍 Buscando: %s",
	},
	"no_results": {
		"en": "No posts found matching the search.",
		"es": "No se encontraron entradas para la búsqueda.",
	},
	"game_not_found": {
		"en": "Game not found.",
		"es": "Juego no encontrado.",
	},
	"invalid_choice": {
		"en": "Invalid choice, please try again.",
		"es": "Elección no válida, inténtalo de nuevo.",
	},
	"mirror_selected": {
		"en": "🔗 Mirror: %s",
		"es": "🔗 Mirror: %s",
	},
	"parts_found": {
		"en": "📋 Found %d part links.",
		"es": "📋 Encontrados %d enlaces de partes.",
	},
	"part_start": {
		"en": "Downloading: Part %02d",
		"es": "Descargando: Parte %02d",
	},
	"part_label": {
		"en": "Part %02d",
		"es": "Parte %02d",
	},
	"part_failed": {
		"en": "Part %02d failed (%s): %v",
		"es": "La parte %02d falló (%s): %v",
	},
	"redirect_detected": {
		"en": "Redirect detected: %s. Closing tab.",
		"es": "Redirección detectada: %s. Cerrando pestaña.",
	},
	"progress": {
		"en": "Download Progress: %.2f%%",
		"es": "Progreso de descarga: %.2f%%",
	},
	"progress_unknown": {
		"en": "Download Progress: unknown",
		"es": "Progreso de descarga: desconocido",
	},
	"download_done": {
		"en": "✅ Download completed successfully.",
		"es": "✅ Descarga completada correctamente.",
	},
	"download_timeout": {
		"en": "Download did not complete within timeout.",
		"es": "La descarga no terminó dentro del tiempo límite.",
	},
	"run_summary": {
		"en": "Finished: %d/%d parts downloaded into %s",
		"es": "Terminado: %d/%d partes descargadas en %s",
	},
}

// Init detects the system language from LANG.
func Init() {
	langEnv := os.Getenv("LANG")
	if strings.HasPrefix(langEnv, "es") {
		CurrentLang = "es"
	} else {
		CurrentLang = "en"
	}
}

// T translates a key into the current language.
func T(key string) string {
	if translations, ok := messages[key]; ok {
		if val, ok := translations[CurrentLang]; ok {
			return val
		}
		return translations["en"]
	}
	return key
}
