// Package fuzztests houses Go fuzz harnesses that exercise the text
// analysis and formatting passes (source -> tokens -> sort -> style).
// Its goal is to smoke test robustness and guard against panics or
// broken scan invariants on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые прогоняют байты через
// лексический индекс и оба прохода форматирования.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/pytok, internal/usort, internal/format,
// internal/driver.

package fuzztests
