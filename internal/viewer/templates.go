package viewer

// simple HTML templates without external assets

const pageTpl = `{{define "head"}}<!doctype html>
<html lang="ko">
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>YouTube Clipping</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto;background:#121218;color:#e8e8f0;max-width:1200px;margin:0 auto;padding:1rem}
a{color:#8ab4ff}
header{display:flex;justify-content:space-between;align-items:center;margin-bottom:1rem}
nav a{margin-right:12px;text-decoration:none;padding:6px 10px;border-radius:6px}
nav a.active{background:#2a2a3a}
.badge{background:#3a3a4e;border-radius:10px;padding:0 8px;margin-left:4px;font-size:.85em}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(260px,1fr));gap:16px}
.card{background:#1e1e2a;border-radius:10px;overflow:hidden;display:flex;flex-direction:column}
.card img{width:100%;aspect-ratio:16/9;object-fit:cover}
.card-content{padding:10px;flex:1}
.channel{font-size:.85em;color:#9a9aae}
.title{font-weight:600;margin:6px 0}
.tag{display:inline-block;background:#2a2a3a;border-radius:4px;padding:1px 6px;margin:2px;font-size:.8em}
.actions{display:flex;justify-content:space-between;padding:8px 10px;border-top:1px solid #2a2a3a}
.actions form{display:inline}
button{background:#2a2a3a;color:inherit;border:0;border-radius:6px;padding:4px 10px;cursor:pointer}
button.active{color:#ffd54f}
.panel{text-align:center;padding:3rem 1rem;color:#9a9aae}
.panel .panel-title{font-size:1.2em;color:#e8e8f0;margin-bottom:6px}
.muted{color:#6b6b7b;font-size:.85em}
.detail img{max-width:100%;border-radius:8px}
.detail section{margin:1rem 0;white-space:pre-wrap}
</style>
{{end}}{{template "head" .}}
<header>
  <nav>
    <a href="/?tab=unread" class="{{if eq .Tab "unread"}}active{{end}}">읽지 않음<span class="badge" id="unread-count">{{.Stats.Unread}}</span></a>
    <a href="/?tab=favorite" class="{{if eq .Tab "favorite"}}active{{end}}">즐겨찾기<span class="badge" id="fav-count">{{.Stats.Favorite}}</span></a>
  </nav>
  <form method="post" action="/refresh"><input type="hidden" name="return" value="/?tab={{.Tab}}"><button type="submit">새로고침</button></form>
</header>
{{if .FromCache}}<div class="muted">캐시된 데이터를 표시 중입니다.</div>{{end}}

{{if .Failed}}
<div class="panel" id="error-panel">
  <div class="panel-title">오류가 발생했습니다</div>
  <div>{{.Err}}</div>
</div>
{{else if and .Loading (not .Cards)}}
<div class="panel" id="loader">
  <div class="panel-title">데이터를 불러오는 중...</div>
</div>
{{else if not .Cards}}
<div class="panel" id="empty-state">
  {{if eq .Tab "favorite"}}
  <div class="panel-title">즐겨찾기가 없습니다</div>
  <div>관심 있는 영상에 별표를 추가해보세요.</div>
  {{else}}
  <div class="panel-title">모든 영상을 확인했습니다</div>
  <div>새로운 영상이 추가되면 여기에 표시됩니다.</div>
  {{end}}
</div>
{{else}}
<div class="grid" id="card-grid">
{{range .Cards}}
  <div class="card" data-id="{{.ID}}">
    <a href="/item/{{.ID}}?tab={{$.Tab}}"><img src="{{.ImageURL}}" alt="{{.Title}}" loading="lazy"></a>
    <div class="card-content">
      <div class="channel">{{.Channel}} · {{.Date}}</div>
      <div class="title"><a href="/item/{{.ID}}?tab={{$.Tab}}">{{.Title}}</a></div>
      <div>{{range .Keywords}}<span class="tag">{{.}}</span>{{end}}</div>
    </div>
    {{if $.Mutable}}
    <div class="actions">
      {{if not .Read}}
      <form method="post" action="/item/{{.ID}}/read"><input type="hidden" name="return" value="/?tab={{$.Tab}}&page={{$.Page.Page}}"><button type="submit">읽음 처리</button></form>
      {{else}}<span class="muted">완료</span>{{end}}
      <form method="post" action="/item/{{.ID}}/favorite"><input type="hidden" name="return" value="/?tab={{$.Tab}}&page={{$.Page.Page}}"><button type="submit" class="{{if .Favorite}}active{{end}}">{{if .Favorite}}★{{else}}☆{{end}}</button></form>
    </div>
    {{end}}
  </div>
{{end}}
</div>
{{if .Page.HasMore}}<p><a id="next-page" href="/?tab={{.Tab}}&page={{inc .Page.Page}}">더 보기</a></p>{{end}}
{{end}}
</html>
`

const detailTpl = `{{template "head" .}}
<header>
  <a href="/?tab={{.Tab}}">← 목록</a>
  <nav>
    {{if .Item.Prev}}<a id="prev" href="/item/{{.Item.Prev}}?tab={{.Tab}}">‹ 이전</a>{{end}}
    {{if .Item.Next}}<a id="next" href="/item/{{.Item.Next}}?tab={{.Tab}}">다음 ›</a>{{end}}
  </nav>
</header>
<div class="detail" data-id="{{.Item.ID}}">
  <h2>{{.Item.Title}}</h2>
  <div class="muted">{{.Item.Channel}} · {{.Item.Date}}</div>
  {{if .Item.ImageURL}}<p><img src="{{.Item.ImageURL}}" alt="{{.Item.Title}}"></p>{{end}}
  {{if .Item.VideoURL}}<p><a href="{{.Item.VideoURL}}" target="_blank" rel="noopener">YouTube에서 보기</a></p>{{end}}
  {{if .Mutable}}
  <div class="actions">
    {{if .Item.Read}}<button disabled>완료</button>{{else}}
    <form method="post" action="/item/{{.Item.ID}}/read"><input type="hidden" name="return" value="/item/{{.Item.ID}}?tab={{.Tab}}"><button type="submit">읽음</button></form>
    {{end}}
    <form method="post" action="/item/{{.Item.ID}}/favorite"><input type="hidden" name="return" value="/item/{{.Item.ID}}?tab={{.Tab}}"><button type="submit" class="{{if .Item.Favorite}}active{{end}}">{{if .Item.Favorite}}★{{else}}☆{{end}}</button></form>
  </div>
  {{end}}
  <h3>요약</h3>
  <section id="m-summary">{{.Item.Summary}}</section>
  <h3>분석</h3>
  <section id="m-analysis">{{.Item.Analysis}}</section>
  <h3>인사이트</h3>
  <section id="m-insights">{{.Item.Insights}}</section>
</div>
</html>
`
